package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore zapisuje snímky požadavků a obrázky na lokální disk.
// Soubory jsou pojmenované podle timestampu, takže dva požadavky se stejným
// timestampem se přepíšou, pokud není zapnuté UniqueFilenames.
type LocalStore struct {
	dataDir  string
	imageDir string
	unique   bool
}

func NewLocalStore(cfg Config) *LocalStore {
	return &LocalStore{
		dataDir:  cfg.DataDir,
		imageDir: cfg.ImageDir,
		unique:   cfg.UniqueFilenames,
	}
}

// EnsureDirs vytvoří adresáře pro data a obrázky.
// Chyba se jen zaloguje: zápis pak selže až u konkrétního požadavku (500).
func (s *LocalStore) EnsureDirs(logger *slog.Logger) {
	for _, dir := range []string{s.dataDir, s.imageDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("Nelze vytvořit adresář", "dir", dir, "error", err)
			continue
		}
		logger.Info("Adresář připraven", "dir", dir)
	}
}

// SaveJSON uloží tělo požadavku jako odsazený JSON (4 mezery) do <dataDir>/<timestamp>.json.
// Vrací cestu k souboru.
func (s *LocalStore) SaveJSON(timestamp string, body []byte) (string, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "    "); err != nil {
		return "", fmt.Errorf("nelze naformátovat JSON: %w", err)
	}

	path := filepath.Join(s.dataDir, s.fileName(timestamp, ".json"))
	if err := os.WriteFile(path, pretty.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("zápis %s selhal: %w", path, err)
	}
	return path, nil
}

// SaveImage dekóduje base64 obrázek a zapíše ho do <imageDir>/<timestamp>.png.
// Obsah se nekontroluje, na disk jdou přesně dekódované bajty.
func (s *LocalStore) SaveImage(timestamp, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("neplatný base64 obrázek: %w", err)
	}

	path := filepath.Join(s.imageDir, s.fileName(timestamp, ".png"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("zápis %s selhal: %w", path, err)
	}
	return path, nil
}

// fileName sestaví název souboru z timestampu.
// Lomítka nahrazujeme, aby timestamp z těla požadavku nemohl zapisovat mimo adresář.
func (s *LocalStore) fileName(timestamp, ext string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(timestamp)
	if s.unique {
		name += "_" + uuid.NewString()
	}
	return name + ext
}
