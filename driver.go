package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/compiler"
)

const sourceExt = ".let"

func readSource(path string) ([]string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines, nil
}

// findSource picks the only source file in dir.
func findSource(dir string) (string, error) {
	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", tracerr.Wrap(err)
	}

	var found []string
	for _, fi := range fis {
		if !fi.IsDir() && strings.HasSuffix(fi.Name(), sourceExt) {
			found = append(found, filepath.Join(dir, fi.Name()))
		}
	}
	switch len(found) {
	case 0:
		return "", tracerr.Errorf("no %s file in %s", sourceExt, dir)
	case 1:
		return found[0], nil
	}
	return "", tracerr.Errorf("more than one %s file in %s, name the one to build", sourceExt, dir)
}

type buildOptions struct {
	Output   string
	EmitIR   bool
	Optimize bool
	// Dump receives a copy of the IR when set.
	Dump io.Writer
}

// build compiles path into <path>.ll next to it, then assembles and links
// it with the manifest's tools.
func build(path string, mod letModule, opts buildOptions) error {
	lines, err := readSource(path)
	if err != nil {
		return err
	}

	ir, err := compiler.Compile(lines, compiler.Options{Filename: path, Optimize: opts.Optimize})
	if err != nil {
		return err
	}
	text := strings.Join(ir, "\n") + "\n"

	if opts.Dump != nil {
		fmt.Fprint(opts.Dump, text)
	}

	irPath := path + ".ll"
	if err := ioutil.WriteFile(irPath, []byte(text), 0644); err != nil {
		return tracerr.Wrap(err)
	}
	plog.Infof("wrote %s", irPath)
	if opts.EmitIR {
		return nil
	}

	base := strings.TrimSuffix(path, sourceExt)
	output := opts.Output
	if output == "" && mod.Package != "" {
		output = filepath.Join(filepath.Dir(path), mod.Package)
	}
	if output == "" {
		output = base
	}

	vars := map[string]string{
		"ir":     irPath,
		"object": base + ".o",
		"output": output,
	}
	if err := runTool(expand(mod.Assembler, vars)); err != nil {
		return err
	}
	return runTool(expand(mod.Linker, vars))
}

func runTool(argv []string) error {
	if len(argv) == 0 {
		return tracerr.Errorf("empty tool command")
	}
	plog.Infof("running %s", strings.Join(argv, " "))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return tracerr.Errorf("%s failed: %w", argv[0], err)
	}
	return nil
}
