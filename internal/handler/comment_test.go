package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentBodyValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "body is required"},
		{"whitespace only", "   ", "body is required"},
		{"too long", strings.Repeat("a", 1001), "body must not exceed 1000 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := commentReq{Body: tc.body}
			_, msg := req.validate()
			assert.Equal(t, tc.want, msg)
		})
	}

	req := commentReq{Body: "  called the venue, crew confirmed  "}
	body, msg := req.validate()
	require.Empty(t, msg)
	assert.Equal(t, "called the venue, crew confirmed", body)

	req = commentReq{Body: strings.Repeat("b", 1000)}
	_, msg = req.validate()
	assert.Empty(t, msg)
}
