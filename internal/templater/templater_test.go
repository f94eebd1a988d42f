package templater

import (
	"testing"

	"tankobon/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestExecTemplate(t *testing.T) {
	chapter := domain.Chapter{
		ID:     "12345",
		Title:  "The Beginning",
		Number: 4.5,
	}

	tmpl := New(chapter)

	assert.Equal(t, "Ch. 004.5 - The Beginning", tmpl.ExecTemplate("Ch. {num:3}{title: - <.>}"))
	assert.Equal(t, "Ch. 4.5", tmpl.ExecTemplate("Ch. {num}"))
	assert.Equal(t, "12345 - The Beginning", tmpl.ExecTemplate("{id} - {title:<.>}"))
}

func TestExecTemplate_EmptyTitle(t *testing.T) {
	tmpl := New(domain.Chapter{Number: 12})

	assert.Equal(t, "Ch. 012", tmpl.ExecTemplate("Ch. {num:3}{title: - <.>}"))
}

func TestExecTemplate_NumFallsBackToID(t *testing.T) {
	// chapters resolved by id only carry no number
	tmpl := New(domain.Chapter{ID: "12345", Title: "The Beginning"})

	assert.Equal(t, "Ch. 12345 - The Beginning", tmpl.ExecTemplate("Ch. {num:3}{title: - <.>}"))
	assert.Equal(t, "Ch. 12345", tmpl.ExecTemplate("Ch. {num}"))
}

func TestExecTemplate_UnknownVariable(t *testing.T) {
	tmpl := New(domain.Chapter{Number: 1})

	assert.Equal(t, "{volume} 1", tmpl.ExecTemplate("{volume} {num}"))
}
