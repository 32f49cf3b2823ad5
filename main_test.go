package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/pontaoski/letgo/compiler"
)

func TestExpand(t *testing.T) {
	argv := expand(defaultAssembler, map[string]string{"ir": "a.let.ll", "object": "a.o"})
	assert.Equal(t, []string{"llc", "-filetype=obj", "-o", "a.o", "a.let.ll"}, argv)

	argv = expand([]string{"ld", "-o{output}", "{unknown}"}, map[string]string{"output": "prog"})
	assert.Equal(t, []string{"ld", "-oprog", "{unknown}"}, argv)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()

	mod, found, err := readModule(dir)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, defaultLinker, mod.Linker)
	assert.True(t, mod.optimize())

	require.NoError(t, writeModule(dir, newModule("hello")))
	mod, found, err = readModule(dir)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", mod.Package)
	assert.Equal(t, defaultAssembler, mod.Assembler)

	custom := "Package: quiet\nOptimize: false\nLogLevel: debug\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, manifestName), []byte(custom), 0644))
	mod, _, err = readModule(dir)
	require.NoError(t, err)
	assert.False(t, mod.optimize())
	assert.Equal(t, "debug", mod.LogLevel)
	assert.Equal(t, defaultAssembler, mod.Assembler)
}

func TestOptionsFor(t *testing.T) {
	set := flag.NewFlagSet("build", flag.ContinueOnError)
	set.Bool("no-optimize", false, "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	opts := optionsFor(c, "a.let", letModule{})
	assert.Equal(t, "a.let", opts.Filename)
	assert.True(t, opts.Optimize)

	off := false
	assert.False(t, optionsFor(c, "a.let", letModule{Optimize: &off}).Optimize)

	require.NoError(t, set.Set("no-optimize", "true"))
	assert.False(t, optionsFor(c, "a.let", letModule{}).Optimize)
}

func TestFindSource(t *testing.T) {
	dir := t.TempDir()
	_, err := findSource(dir)
	assert.Error(t, err)

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "one.let"), []byte("1\n"), 0644))
	path, err := findSource(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "one.let"), path)

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "two.let"), []byte("2\n"), 0644))
	_, err = findSource(dir)
	assert.Error(t, err)
}

func TestBuildEmitsIR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.let")
	source := "let negate(num) = -num\r\nnegate(-1)\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(source), 0644))

	lines, err := readSource(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"let negate(num) = -num", "negate(-1)"}, lines)

	var dump bytes.Buffer
	err = build(path, newModule("prog"), buildOptions{EmitIR: true, Optimize: true, Dump: &dump})
	require.NoError(t, err)

	written, err := ioutil.ReadFile(path + ".ll")
	require.NoError(t, err)
	assert.Equal(t, dump.String(), string(written))
	assert.Contains(t, string(written), "define i64 @main()")
}

func TestBuildStopsOnErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.let")
	require.NoError(t, ioutil.WriteFile(path, []byte("let fx(a) = { a + 3 }\nfx(1) - a\n"), 0644))

	err := build(path, newModule("bad"), buildOptions{EmitIR: true})
	require.Error(t, err)
	assert.Equal(t, "check error", stage(err))
	assert.NoFileExists(t, path+".ll")

	var out bytes.Buffer
	report(&out, err)
	assert.Contains(t, out.String(), "undeclared name 'a'")
}

func TestBuildReportsToolFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.let")
	require.NoError(t, ioutil.WriteFile(path, []byte("1\n"), 0644))

	mod := newModule("prog")
	mod.Assembler = []string{"false", "{ir}"}
	err := build(path, mod, buildOptions{Optimize: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "false failed")
}

func TestSession(t *testing.T) {
	s := &session{opts: compiler.Options{Filename: "<repl>", Optimize: true}}

	feed := func(line string) (int64, bool, bool) {
		result, show, more, err := s.feed(line)
		require.NoError(t, err, line)
		return result, show, more
	}

	_, show, _ := feed("let double(n) = n * 2")
	assert.False(t, show)
	_, show, _ = feed("let x = 21")
	assert.False(t, show)

	result, show, _ := feed("double(x)")
	assert.True(t, show)
	assert.Equal(t, int64(42), result)

	_, _, more := feed("(x +")
	assert.True(t, more)
	result, show, more = feed("1)")
	assert.False(t, more)
	assert.True(t, show)
	assert.Equal(t, int64(22), result)

	_, _, _, err := s.feed("y")
	require.Error(t, err)
	assert.Equal(t, "check error", stage(err))
	assert.Equal(t, []string{"let double(n) = n * 2", "let x = 21"}, s.bindings)
	assert.True(t, strings.HasPrefix(s.bindings[0], "let"))

	result, show, _ = feed("let y = 1; y + x")
	assert.True(t, show)
	assert.Equal(t, int64(22), result)
	assert.Equal(t, "let y = 1", s.bindings[len(s.bindings)-1])

	result, show, _ = feed("2")
	assert.True(t, show)
	assert.Equal(t, int64(2), result)

	result, _, _ = feed("y * 3")
	assert.Equal(t, int64(3), result)
}
