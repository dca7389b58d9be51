package event

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateSequence(t *testing.T) {
	valid := [][]Event[int]{
		{},
		{Next(1), Next(2)},
		{Completed[int]()},
		{Next(1), Next(2), Completed[int]()},
		{Next(1), Failed[int](errTest)},
		{Interrupted[int]()},
	}
	for _, sequence := range valid {
		require.NoError(t, ValidateSequence(sequence...), "%v", sequence)
	}

	invalid := [][]Event[int]{
		{Completed[int](), Next(1)},
		{Next(1), Failed[int](errTest), Completed[int]()},
		{Interrupted[int](), Interrupted[int]()},
		{Next(1), {}},
	}
	for _, sequence := range invalid {
		err := ValidateSequence(sequence...)
		require.Error(t, err, "%v", sequence)
		require.True(t, errors.Is(err, ErrGrammarViolation))
	}
}
