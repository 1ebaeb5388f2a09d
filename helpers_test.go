package summitlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "http://example.com/peaks/mont-blanc/", BuildURL("http://example.com", "peaks", "mont-blanc"))
	assert.Equal(t, "http://example.com", BuildURL("http://example.com"))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"alps", "glacier"}, SplitCSV(" alps , glacier ,, "))
	assert.Nil(t, SplitCSV("   "))
	assert.Nil(t, SplitCSV(""))
}
