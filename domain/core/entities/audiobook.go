package entities

import (
	"fmt"

	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"
)

// AudioBook is an immutable catalog entry for a simulated audiobook.
// All attributes are fixed at construction; the generator never mutates
// the catalog after the population is built.
type AudioBook struct {
	id       valueobjects.BookID
	title    string
	author   string
	duration int // total length in seconds
	chapters int
	genre    string
}

// NewAudioBook creates an audiobook with full validation.
func NewAudioBook(title, author string, duration, chapters int, genre string) (*AudioBook, error) {
	if title == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if duration <= 0 {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("duration must be positive, got %d", duration))
	}
	if chapters < 1 {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("chapters must be at least 1, got %d", chapters))
	}

	return &AudioBook{
		id:       valueobjects.NewBookID(),
		title:    title,
		author:   author,
		duration: duration,
		chapters: chapters,
		genre:    genre,
	}, nil
}

// ID returns the book's unique identifier.
func (b *AudioBook) ID() valueobjects.BookID {
	return b.id
}

// Title returns the book's title.
func (b *AudioBook) Title() string {
	return b.title
}

// Author returns the book's author.
func (b *AudioBook) Author() string {
	return b.author
}

// Duration returns the total length in seconds.
func (b *AudioBook) Duration() int {
	return b.duration
}

// Chapters returns the number of chapters.
func (b *AudioBook) Chapters() int {
	return b.chapters
}

// Genre returns the book's genre.
func (b *AudioBook) Genre() string {
	return b.genre
}

// ChapterAt derives the chapter a playback position falls into.
// Chapters are modelled as equal-length slices of the book; the result is
// clamped to the final chapter so positions at the very end stay in range.
// The guard also covers catalogs where chapters outnumber seconds.
func (b *AudioBook) ChapterAt(position int) int {
	secondsPerChapter := b.duration / b.chapters
	if secondsPerChapter == 0 {
		return b.chapters
	}

	chapter := 1 + position/secondsPerChapter
	if chapter > b.chapters {
		chapter = b.chapters
	}
	return chapter
}

// ClampPosition bounds a playback position to [0, duration].
func (b *AudioBook) ClampPosition(position int) int {
	if position < 0 {
		return 0
	}
	if position > b.duration {
		return b.duration
	}
	return position
}
