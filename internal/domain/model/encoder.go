package model

import (
	"fmt"
	"slices"
	"sort"
)

// UnseenCategoryCode is the code assigned to a category that was not in the
// training vocabulary.
const UnseenCategoryCode = 0

// CategoryEncoder maps each categorical column's values to integer codes.
// Codes are positions in the sorted training vocabulary. The encoder is
// immutable once built.
type CategoryEncoder struct {
	vocabularies map[string][]string
	codes        map[string]map[string]int
}

// NewCategoryEncoder builds an encoder from per-column vocabularies. Each
// vocabulary is deduplicated and sorted so codes do not depend on input order.
func NewCategoryEncoder(vocabularies map[string][]string) (*CategoryEncoder, error) {
	if len(vocabularies) == 0 {
		return nil, fmt.Errorf("category encoder requires at least one column")
	}

	enc := &CategoryEncoder{
		vocabularies: make(map[string][]string, len(vocabularies)),
		codes:        make(map[string]map[string]int, len(vocabularies)),
	}
	for col, values := range vocabularies {
		vocab := slices.Clone(values)
		sort.Strings(vocab)
		vocab = slices.Compact(vocab)
		if len(vocab) == 0 {
			return nil, fmt.Errorf("category encoder column %s has an empty vocabulary", col)
		}

		codes := make(map[string]int, len(vocab))
		for i, v := range vocab {
			codes[v] = i
		}
		enc.vocabularies[col] = vocab
		enc.codes[col] = codes
	}
	return enc, nil
}

// FitCategoryEncoder collects the vocabulary of every categorical column
// from the given records.
func FitCategoryEncoder(records []Record) (*CategoryEncoder, error) {
	vocab := make(map[string][]string, len(CategoricalColumns))
	for _, r := range records {
		for _, col := range CategoricalColumns {
			v, _ := r.Category(col)
			vocab[col] = append(vocab[col], v)
		}
	}
	return NewCategoryEncoder(vocab)
}

// Encode returns the code for value in column. Unseen values get
// UnseenCategoryCode; a column the encoder was never fitted on is a
// FeatureMismatchError.
func (e *CategoryEncoder) Encode(column, value string) (int, error) {
	codes, ok := e.codes[column]
	if !ok {
		return 0, &FeatureMismatchError{Reason: fmt.Sprintf("no encoder fitted for column %s", column)}
	}
	code, ok := codes[value]
	if !ok {
		return UnseenCategoryCode, nil
	}
	return code, nil
}

// Columns returns the encoded column names in sorted order.
func (e *CategoryEncoder) Columns() []string {
	cols := make([]string, 0, len(e.vocabularies))
	for col := range e.vocabularies {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Vocabulary returns a copy of the sorted vocabulary of column.
func (e *CategoryEncoder) Vocabulary(column string) []string {
	return slices.Clone(e.vocabularies[column])
}

// Vocabularies returns a deep copy of every column vocabulary.
func (e *CategoryEncoder) Vocabularies() map[string][]string {
	out := make(map[string][]string, len(e.vocabularies))
	for col, vocab := range e.vocabularies {
		out[col] = slices.Clone(vocab)
	}
	return out
}
