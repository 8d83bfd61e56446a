// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command dxbcpatch merges the constant buffers of compiled DXBC shaders into
// cb0 and renumbers their texture registers.
//
// Usage:
//
//	dxbcpatch [options] <input.dxbc>
//	dxbcpatch -config job.toml
//
// Examples:
//
//	dxbcpatch -o out.dxbc -remap t2:s5 in.dxbc   # Patch one shader
//	dxbcpatch -self-check -v 2 in.dxbc > out.dxbc  # Verify the codec first
//	dxbcpatch -config shaders.toml -j 4           # Patch a batch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gogpu/dxbc"
	"github.com/gogpu/dxbc/config"
	"github.com/gogpu/dxbc/patch"
)

const dxbcpatchVersion = "0.1.0-dev"

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type options struct {
	output     string
	remap      patch.TextureRemap
	selfCheck  bool
	dropLevel9 bool
	verbosity  int
	logFile    string
	configPath string
	jobs       int
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dxbcpatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs) }

	var o options
	fs.StringVar(&o.output, "o", "", "output file (default: stdout)")
	fs.Var(&o.remap, "remap", "texture remap, e.g. t2:s5,t7:s7")
	fs.BoolVar(&o.selfCheck, "self-check", false, "verify the codec on the unpatched program first")
	fs.BoolVar(&o.dropLevel9, "drop-level9", false, "drop feature level 9 bytecode (Aon9) instead of failing")
	fs.IntVar(&o.verbosity, "v", 0, "log verbosity (1 info, 2 debug)")
	fs.StringVar(&o.logFile, "log", "", "log file (default: stderr)")
	fs.StringVar(&o.configPath, "config", "", "TOML job file listing shaders to patch")
	fs.IntVar(&o.jobs, "j", 0, "parallel jobs for -config (default: from job file)")
	fs.BoolVar(&o.version, "version", false, "print version")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "dxbcpatch version %s\n", dxbcpatchVersion)
		return 0
	}

	var err error
	if o.configPath != "" {
		if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "Error: -config does not take input files")
			return 2
		}
		if len(o.remap) > 0 {
			fmt.Fprintln(stderr, "Error: -remap cannot be combined with -config; list textures under [shader.textures]")
			return 2
		}
		err = runBatch(context.Background(), &o, stdout)
	} else {
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Error: expected exactly one input file")
			usage(fs)
			return 2
		}
		configureLog(o.verbosity, o.logFile)
		err = runSingle(fs.Arg(0), &o, stdout)
	}

	if err != nil {
		if kind, ok := dxbc.KindOf(err); ok {
			fmt.Fprintf(stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func configureLog(verbosity int, file string) {
	var path *string
	if file != "" {
		path = &file
	}
	commonlog.Configure(verbosity, path)
}

func runSingle(input string, o *options, stdout io.Writer) error {
	if o.output == "" && isTerminal(stdout) {
		return errors.New("refusing to write binary output to a terminal; use -o")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	out, err := dxbc.PatchContainer(data, o.remap, dxbc.WithSelfCheck(o.selfCheck), dxbc.WithDropLevel9(o.dropLevel9))
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if o.output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(o.output, out, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(stdout, "Successfully patched %s to %s (%d bytes)\n", input, o.output, len(out))
	return nil
}

func runBatch(ctx context.Context, o *options, stdout io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	verbosity, logFile := cfg.Log.Verbosity, cfg.Log.File
	if o.verbosity > 0 {
		verbosity = o.verbosity
	}
	if o.logFile != "" {
		logFile = o.logFile
	}
	configureLog(verbosity, logFile)

	jobs := cfg.Jobs
	if o.jobs > 0 {
		jobs = o.jobs
	}
	opts := []dxbc.Option{
		dxbc.WithSelfCheck(cfg.SelfCheck || o.selfCheck),
		dxbc.WithDropLevel9(cfg.DropLevel9 || o.dropLevel9),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range cfg.Shaders {
		s := &cfg.Shaders[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return patchFile(s, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Successfully patched %d shaders\n", len(cfg.Shaders))
	return nil
}

func patchFile(s *config.Shader, opts []dxbc.Option) error {
	data, err := os.ReadFile(s.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.Input, err)
	}
	out, err := dxbc.PatchContainer(data, s.Remap(), opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Input, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Output), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.Output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.Output, err)
	}
	return nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: dxbcpatch [options] <input.dxbc>\n")
	fmt.Fprintf(w, "       dxbcpatch -config job.toml\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  dxbcpatch -o out.dxbc in.dxbc           Patch to file\n")
	fmt.Fprintf(w, "  dxbcpatch -remap t2:s5 in.dxbc > o.dxbc Remap t2 to register 5\n")
	fmt.Fprintf(w, "  dxbcpatch -config shaders.toml          Patch every shader in a job file\n")
}
