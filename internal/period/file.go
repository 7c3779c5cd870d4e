package period

import (
	"fmt"
	"io"
	"os"

	"github.com/tinytelemetry/narrator/internal/model"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a period definition file.
type File struct {
	Periods []model.PeriodDef `yaml:"periods"`
}

// Decode reads period definitions from YAML.
func Decode(r io.Reader) ([]model.PeriodDef, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding period file: %w", err)
	}
	return f.Periods, nil
}

// ReadFile reads the period definitions of a YAML period file.
func ReadFile(path string) ([]model.PeriodDef, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("periods file: %w", err)
	}
	defer fh.Close()

	defs, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("periods file %s: %w", path, err)
	}
	return defs, nil
}
