package configuration

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/maps"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

var errUnsupportedProviderMethod = errors.New("pflag provider does not support this method")

// lowerPosflag implements a pflag command line provider with lower-cased keys.
type lowerPosflag struct {
	delim   string
	flagset *pflag.FlagSet
	ko      *koanf.Koanf
}

// lowerPosflagProvider returns a commandline flags provider that returns a nested map where the nesting hierarchy of
// keys is defined by delim, so "parent.child.key: 1" becomes {parent: {child: {key: 1}}}.
//
// Flags that were not set on the command line only contribute their default value if no other provider has set the
// key before.
func lowerPosflagProvider(f *pflag.FlagSet, delim string, ko *koanf.Koanf) *lowerPosflag {
	return &lowerPosflag{
		flagset: f,
		delim:   delim,
		ko:      ko,
	}
}

// Read reads the flag variables and returns a nested conf map.
func (p *lowerPosflag) Read() (map[string]interface{}, error) {
	mp := make(map[string]interface{})
	p.flagset.VisitAll(func(f *pflag.Flag) {
		key := strings.ToLower(f.Name)
		if !f.Changed && (p.ko == nil || p.ko.Exists(key)) {
			return
		}

		mp[key] = p.value(f)
	})

	return maps.Unflatten(mp, p.delim), nil
}

func (p *lowerPosflag) value(f *pflag.Flag) interface{} {
	switch f.Value.Type() {
	case "int", "int8", "int16", "int32", "int64":
		return cast.ToInt64(f.Value.String())
	case "uint", "uint8", "uint16", "uint32", "uint64":
		return cast.ToUint64(f.Value.String())
	case "float32", "float64":
		return cast.ToFloat64(f.Value.String())
	case "bool":
		v, _ := p.flagset.GetBool(f.Name)

		return v
	case "duration":
		v, _ := p.flagset.GetDuration(f.Name)

		return v
	case "stringSlice":
		v, _ := p.flagset.GetStringSlice(f.Name)

		return v
	case "intSlice":
		v, _ := p.flagset.GetIntSlice(f.Name)

		return v
	default:
		return f.Value.String()
	}
}

// ReadBytes is not supported by the pflag provider.
func (p *lowerPosflag) ReadBytes() ([]byte, error) {
	return nil, errUnsupportedProviderMethod
}

// Watch is not supported.
func (p *lowerPosflag) Watch(func(event interface{}, err error)) error {
	return errUnsupportedProviderMethod
}
