package configuration

import (
	flag "github.com/spf13/pflag"
)

// NewUnsortedFlagSet returns a flag set that prints its flags in definition order.
func NewUnsortedFlagSet(name string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	flagSet := flag.NewFlagSet(name, errorHandling)
	flagSet.SortFlags = false

	return flagSet
}
