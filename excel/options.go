package excel

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Options struct {
	// Column widths in characters; zero leaves the spreadsheet default.
	KeyWidth   float64 `yaml:"key_width"`
	ValueWidth float64 `yaml:"value_width"`

	BoldKeys   bool `yaml:"bold_keys"`
	WrapValues bool `yaml:"wrap_values"`
	// FreezeKeys keeps the key column visible when scrolling sideways.
	FreezeKeys bool `yaml:"freeze_keys"`

	Properties Properties `yaml:"properties"`
}

type Properties struct {
	Application string `yaml:"application"`
	Company     string `yaml:"company"`
	Creator     string `yaml:"creator"`
	Title       string `yaml:"title"`
}

func DefaultOptions() Options {
	return Options{
		KeyWidth:   30,
		ValueWidth: 50,
		Properties: Properties{
			Application: "kastelo.dev/cfgxlsx",
		},
	}
}

// ReadOptions decodes YAML options from r on top of DefaultOptions. Unknown
// keys are an error.
func ReadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

func LoadOptions(path string) (Options, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer fd.Close()
	return ReadOptions(fd)
}
