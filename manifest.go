package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const manifestName = "Let Module Information"

// letModule is the project manifest. Assembler and Linker are argument
// templates; {ir}, {object} and {output} are replaced before running them.
type letModule struct {
	Package   string   `yaml:"Package"`
	Assembler []string `yaml:"Assembler,omitempty"`
	Linker    []string `yaml:"Linker,omitempty"`
	Optimize  *bool    `yaml:"Optimize,omitempty"`
	LogLevel  string   `yaml:"LogLevel,omitempty"`
}

var (
	defaultAssembler = []string{"llc", "-filetype=obj", "-o", "{object}", "{ir}"}
	defaultLinker    = []string{"cc", "-o", "{output}", "{object}"}
)

func newModule(name string) letModule {
	optimize := true
	return letModule{
		Package:   name,
		Assembler: defaultAssembler,
		Linker:    defaultLinker,
		Optimize:  &optimize,
	}
}

// withDefaults fills in whatever the manifest leaves out.
func (m letModule) withDefaults() letModule {
	if len(m.Assembler) == 0 {
		m.Assembler = defaultAssembler
	}
	if len(m.Linker) == 0 {
		m.Linker = defaultLinker
	}
	if m.Optimize == nil {
		optimize := true
		m.Optimize = &optimize
	}
	return m
}

func (m letModule) optimize() bool {
	return m.Optimize == nil || *m.Optimize
}

// readModule loads the manifest in dir. A directory without one gets the
// defaults; found reports which happened.
func readModule(dir string) (m letModule, found bool, err error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, manifestName))
	if os.IsNotExist(err) {
		return letModule{}.withDefaults(), false, nil
	}
	if err != nil {
		return letModule{}, false, tracerr.Errorf("error reading %s: %w", manifestName, err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return letModule{}, false, tracerr.Errorf("error reading %s: %w", manifestName, err)
	}
	return m.withDefaults(), true, nil
}

func writeModule(dir string, m letModule) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return tracerr.Errorf("error creating %s: %w", manifestName, err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, manifestName), out, 0644); err != nil {
		return tracerr.Errorf("error creating %s: %w", manifestName, err)
	}
	return nil
}

// expand substitutes the placeholders of an argument template.
func expand(template []string, vars map[string]string) []string {
	var pairs []string
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)

	argv := make([]string, len(template))
	for i, arg := range template {
		argv[i] = r.Replace(arg)
	}
	return argv
}
