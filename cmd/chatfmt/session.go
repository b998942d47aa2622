package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gorewood/chatfmt/internal/catalog"
	"github.com/gorewood/chatfmt/internal/config"
	"github.com/gorewood/chatfmt/internal/output"
	"github.com/gorewood/chatfmt/internal/resolve"
	"github.com/gorewood/chatfmt/internal/tokenizer"
)

// session is the state built once per command from flags, config and env.
type session struct {
	cfg       *config.Config
	resolver  *resolve.Resolver
	tokenizer *tokenizer.Config
	log       zerolog.Logger
}

// addSourceFlags registers the persistent flags that feed the catalog and
// tokenizer.
func addSourceFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "Run config file (.yaml, .yml, .json, .jsonc)")
	cmd.PersistentFlags().StringArray("template-dir", nil, "Extra directory of *.jinja templates to register (repeatable)")
	cmd.PersistentFlags().String("tokenizer", "", "Model directory or tokenizer_config.json supplying the tokenizer default")
}

// newLogger builds the stderr diagnostic logger from --log-level.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.WarnLevel
	}

	if isJSONMode(cmd) {
		return zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger()
	}

	writer := zerolog.ConsoleWriter{
		Out:          cmd.ErrOrStderr(),
		NoColor:      !output.ResolveColorMode(colorMode(cmd), output.IsTTY(cmd.ErrOrStderr())),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(writer).Level(level)
}

// loadSession reads the config file, builds the catalog in registration
// order and loads the tokenizer if one is configured.
//
// Registration order: built-ins, global dir, project dir, config
// template_dirs, --template-dir flags, inline config templates sorted by name.
// A name registered twice is a conflict.
func loadSession(cmd *cobra.Command) (*session, error) {
	log := newLogger(cmd)

	cfg := &config.Config{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Debug().Str("path", path).Int("datasets", len(cfg.Datasets)).Msg("loaded config")
	}
	if cfg.ChatTemplate == "" {
		cfg.ChatTemplate = os.Getenv(envChatTemplate)
	}

	cat, err := buildCatalog(cmd, cfg, log)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		resolver: resolve.New(cat, resolve.WithLogger(log)),
		log:      log,
	}

	tokPath, _ := cmd.Flags().GetString("tokenizer")
	if tokPath == "" {
		tokPath = cfg.Tokenizer
	}
	if tokPath == "" {
		tokPath = os.Getenv(envTokenizer)
	}
	if tokPath != "" {
		tok, err := tokenizer.Load(tokPath)
		if err != nil {
			return nil, err
		}
		s.tokenizer = tok
		log.Debug().Str("path", tok.Path).Bool("has_chat_template", tok.ChatTemplate() != "").Msg("loaded tokenizer")
	}
	return s, nil
}

func buildCatalog(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) (*catalog.Catalog, error) {
	cat := catalog.New()

	type templateDir struct {
		dir    string
		source string
	}
	dirs := []templateDir{
		{config.GlobalTemplatesDir(), catalog.SourceGlobal},
		{config.ProjectTemplatesDir, catalog.SourceProject},
	}
	for _, dir := range cfg.TemplateDirs {
		dirs = append(dirs, templateDir{dir, catalog.SourceConfig})
	}
	flagDirs, _ := cmd.Flags().GetStringArray("template-dir")
	for _, dir := range flagDirs {
		dirs = append(dirs, templateDir{dir, catalog.SourceConfig})
	}

	for _, d := range dirs {
		n, err := cat.LoadDir(d.dir, d.source)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Debug().Str("dir", d.dir).Int("count", n).Msg("registered templates")
		}
	}

	names := make([]string, 0, len(cfg.Templates))
	for name := range cfg.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		err := cat.RegisterEntry(catalog.Entry{
			Name:   name,
			Body:   cfg.Templates[name],
			Source: catalog.SourceConfig,
		})
		if err != nil {
			return nil, fmt.Errorf("registering config template: %w", err)
		}
	}
	return cat, nil
}

// tokenizerOrNil returns the loaded tokenizer as a resolve.Tokenizer, or a
// nil interface when none was configured.
func (s *session) tokenizerOrNil() resolve.Tokenizer {
	if s.tokenizer == nil {
		return nil
	}
	return s.tokenizer
}

// toExitError maps library errors onto CLI exit codes.
func toExitError(err error) *output.ExitError {
	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case errors.Is(err, catalog.ErrDuplicateName):
		return output.NewConflictErrorWithCause(err.Error(), err)
	case errors.Is(err, resolve.ErrMissingInlineTemplate),
		errors.Is(err, resolve.ErrMissingTokenizer),
		errors.Is(err, resolve.ErrTokenizerHasNoDefault),
		errors.Is(err, resolve.ErrUnknownTemplate),
		errors.Is(err, tokenizer.ErrNotFound),
		errors.Is(err, config.ErrUnsupportedFormat),
		errors.Is(err, fs.ErrNotExist):
		return output.NewUserErrorWithCause(err.Error(), err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}

// fail prints err and returns it as an ExitError.
func fail(printer *output.Printer, err error) error {
	exitErr := toExitError(err)
	printer.Error(exitErr)
	return exitErr
}
