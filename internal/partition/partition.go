// Package partition derives the DynamoDB range-key label from a username.
// The label spreads records across partitions; it is not a security
// boundary.
package partition

import (
	"strings"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

// labels maps the lowercased first letter of a username to its partition
// label. The table is fixed; changing it would orphan existing records.
var labels = map[byte]string{
	'a': "Amelie", 'b': "Basterds", 'c': "Corleone", 'd': "Django", 'e': "Edgar",
	'f': "Floorgang", 'g': "Gandalf", 'h': "HansLanda", 'i': "Ireland", 'j': "Jeeves",
	'k': "Kubrick", 'l': "Lebowski", 'm': "Masterpiece", 'n': "Norman", 'o': "Ozymandias",
	'p': "Pikachu", 'q': "Quasimodo", 'r': "Reddit", 's': "Strangelove", 't': "Tambourine",
	'u': "Updog", 'v': "Vader", 'w': "Waffles", 'x': "Xenon", 'y': "Yoda", 'z': "Zulu",
}

// Of returns the partition label for username. It fails with
// common.ErrorInvalidUsername if username is empty or its first character,
// lowercased, is not a letter a-z.
func Of(username string) (string, error) {
	if username == "" {
		return "", common.ErrorInvalidUsername
	}
	first := strings.ToLower(username[:1])[0]
	label, ok := labels[first]
	if !ok {
		return "", common.ErrorInvalidUsername
	}
	return label, nil
}
