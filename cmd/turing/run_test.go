package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in          string
		left, right int
		wantErr     bool
	}{
		{"3,7", 3, 7, false},
		{"5", 5, 5, false},
		{" 0 , 2 ", 0, 2, false},
		{"1,2,3", 0, 0, true},
		{"-1,2", 0, 0, true},
		{"a,b", 0, 0, true},
	}

	for _, tt := range tests {
		left, right, err := parseWindow(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.left, left, tt.in)
		assert.Equal(t, tt.right, right, tt.in)
	}
}
