package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/glue/log"
	"github.com/ardnew/glue/profile"
)

// Init generates a configuration file from the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(fileAttr(confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.Marshal(configValues(ktx))
	if err != nil {
		return ErrMarshal.With(fileAttr(confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(fileAttr(confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file", fileAttr(confPath))

	return nil
}

// configValues maps each visible global flag to its current value. Help and
// profiling flags are omitted, as are empty strings and empty lists.
func configValues(ktx *kong.Context) map[string]any {
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || flag.Name == "help" ||
			strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			values[flag.Name] = v
		}
	}

	return values
}

func configValue(val any) (any, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false
	case bool:
		return v, true
	case string:
		return v, v != ""
	case fmt.Stringer:
		return v.String(), true
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return val, true
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return val, rv.Len() > 0
	default:
		return fmt.Sprint(val), true
	}
}
