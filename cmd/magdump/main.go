// magdump - serialize a TOML document as a magpack marshal stream
//
// The dump configuration names the input document, the output path, the
// encoding-tag policy, and an optional CBOR class manifest to install
// before dumping.
//
// Build: go build ./cmd/magdump
// Usage:
//   magdump -config magdump.toml
//   magdump -config magdump.toml -o out.mag -verbose 1
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/magpack/marshal"
	"github.com/chazu/magpack/runtime"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("magdump")

type config struct {
	Input struct {
		Document string `toml:"document"`
	} `toml:"input"`
	Output struct {
		Path string `toml:"path"`
	} `toml:"output"`
	Encoding struct {
		Tags string `toml:"tags"`
	} `toml:"encoding"`
	Classes struct {
		Manifest string `toml:"manifest"`
	} `toml:"classes"`
}

func main() {
	configPath := flag.String("config", "magdump.toml", "path to the dump configuration")
	outPath := flag.String("o", "", "output path (overrides the configuration)")
	verbosity := flag.Int("verbose", 0, "log verbosity")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	if err := run(*configPath, *outPath); err != nil {
		log.Criticalf("%s", err.Error())
		os.Exit(1)
	}
}

func run(configPath, outPath string) error {
	var cfg config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return fmt.Errorf("cannot read %s: %w", configPath, err)
	}
	if cfg.Input.Document == "" {
		return fmt.Errorf("%s: no input document configured", configPath)
	}
	if outPath == "" {
		outPath = cfg.Output.Path
	}
	if outPath == "" {
		return fmt.Errorf("%s: no output path configured", configPath)
	}

	mode, err := tagMode(cfg.Encoding.Tags)
	if err != nil {
		return err
	}

	rt := runtime.NewRuntime()
	if cfg.Classes.Manifest != "" {
		data, err := os.ReadFile(cfg.Classes.Manifest)
		if err != nil {
			return fmt.Errorf("cannot read class manifest: %w", err)
		}
		defs, err := runtime.DecodeManifest(data)
		if err != nil {
			return err
		}
		if err := rt.BuildClasses(defs); err != nil {
			return err
		}
		log.Infof("installed %d class definitions from %s", len(defs), cfg.Classes.Manifest)
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(cfg.Input.Document, &raw); err != nil {
		return fmt.Errorf("cannot read %s: %w", cfg.Input.Document, err)
	}
	root, err := fromTOML(rt, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input.Document, err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// The writer flushes the buffered sink when the top-level write
	// completes.
	mw := marshal.NewWriter(bufio.NewWriter(f), rt, marshal.WithEncodingTags(mode))
	if err := mw.WriteValue(root); err != nil {
		return err
	}
	log.Infof("wrote %s", outPath)
	return nil
}

func tagMode(name string) (marshal.EncodingTagMode, error) {
	switch name {
	case "", "auto":
		return marshal.EncodingTagsAuto, nil
	case "never":
		return marshal.EncodingTagsNever, nil
	case "always":
		return marshal.EncodingTagsAlways, nil
	default:
		return 0, fmt.Errorf("unknown encoding tag mode %q", name)
	}
}
