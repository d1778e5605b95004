package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageClamping(t *testing.T) {
	tests := []struct {
		name             string
		page, limit      int
		wantPage, wantLm int
	}{
		{"defaults pass through", 2, 10, 2, 10},
		{"zero page clamped to 1", 0, 10, 1, 10},
		{"negative page clamped to 1", -5, 10, 1, 10},
		{"zero limit falls back to 20", 1, 0, 1, 20},
		{"limit capped at 50", 1, 500, 1, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLm, p.Limit)
		})
	}
}

func TestWithTotal(t *testing.T) {
	p := NewPage(1, 20)

	assert.Equal(t, 0, p.WithTotal(0).Pages)
	assert.Equal(t, 1, p.WithTotal(1).Pages)
	assert.Equal(t, 1, p.WithTotal(20).Pages)
	assert.Equal(t, 2, p.WithTotal(21).Pages)
	assert.Equal(t, int64(21), p.WithTotal(21).Total)
}

func TestErrorUsesDefaultMessage(t *testing.T) {
	r := Error(CodeNotFound, "")
	assert.Equal(t, CodeNotFound, r.Code)
	assert.Equal(t, CodeMsgMap[CodeNotFound], r.Msg)

	custom := Error(CodeBadRequest, "priceMax must be numeric")
	assert.Equal(t, "priceMax must be numeric", custom.Msg)
}
