package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadTopic = errors.New("topic neodpovídá tvaru logs/<služba>")

// LogWriter připisuje řádky logů do souborů <dir>/<služba>.log.
type LogWriter struct {
	dir string
}

func NewLogWriter(dir string) *LogWriter {
	return &LogWriter{dir: dir}
}

// ServiceFromTopic vytáhne název služby z topicu logs/<služba>[/...].
func ServiceFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[0] != "logs" || parts[1] == "" || parts[1] == "." || parts[1] == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadTopic, topic)
	}
	return parts[1], nil
}

// Append otevře (nebo vytvoří) soubor služby a připíše payload jako jeden řádek.
// Soubor se pro každý zápis otevírá znovu, takže nevadí rotace logů zvenku.
func (w *LogWriter) Append(topic string, payload []byte) error {
	service, err := ServiceFromTopic(topic)
	if err != nil {
		return err
	}

	filename := filepath.Join(w.dir, service+".log")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := append([]byte(strings.TrimRight(string(payload), "\n")), '\n')
	if _, err := f.Write(line); err != nil {
		return err
	}
	return nil
}
