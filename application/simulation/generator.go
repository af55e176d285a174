package simulation

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"audiolytics/domain/core/entities"
	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	genres       = []string{"Fiction", "Mystery", "Science", "History", "Biography"}
	deviceTypes  = []string{"mobile", "tablet", "desktop"}
	networkTypes = []string{"wifi", "cellular", "ethernet"}
)

const appVersion = "1.0.0"

// EventGenerator produces plausible audiobook listening sessions for a
// fixed population of users and books. The population is built once at
// construction and is read-only afterwards; the generator itself has no
// side effects beyond consuming the supplied random source.
type EventGenerator struct {
	cfg    Config
	rng    *rand.Rand
	users  []*entities.User
	books  []*entities.AudioBook
	logger *zap.Logger
}

// NewEventGenerator builds a generator and its user/book population.
// The random source is explicit so tests can seed it for reproducible
// output.
func NewEventGenerator(cfg Config, rng *rand.Rand, logger *zap.Logger) (*EventGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, pkgerrors.NewValidationError("random source cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &EventGenerator{
		cfg:    cfg,
		rng:    rng,
		logger: logger,
	}

	var err error
	if g.users, err = g.createUsers(); err != nil {
		return nil, err
	}
	if g.books, err = g.createBooks(); err != nil {
		return nil, err
	}

	logger.Info("Simulation population created",
		zap.Int("users", len(g.users)),
		zap.Int("books", len(g.books)),
	)

	return g, nil
}

// Users returns the generated user population.
func (g *EventGenerator) Users() []*entities.User {
	return g.users
}

// Books returns the generated book catalog.
func (g *EventGenerator) Books() []*entities.AudioBook {
	return g.books
}

// GenerateSession produces one listening session for a (user, book) pair:
// a chronologically ordered sequence starting with START_PLAYBACK and
// ending with END_PLAYBACK, with strictly increasing timestamps.
//
// The walk follows a small state machine. START_PLAYBACK allows PAUSE or
// SEEK; PAUSE allows only RESUME; RESUME allows PAUSE or SEEK; SEEK allows
// only PAUSE. A position that would run past the end of the book is
// clamped and forces END_PLAYBACK, cutting the planned event count short.
func (g *EventGenerator) GenerateSession(user *entities.User, book *entities.AudioBook) ([]*entities.PlaybackEvent, error) {
	currentTime := g.cfg.StartDate
	position := 0

	start, err := entities.NewPlaybackEvent(
		user.ID(),
		book.ID(),
		valueobjects.EventTypeStartPlayback.String(),
		currentTime,
		position,
		book.ChapterAt(position),
		g.randomMetadata(),
	)
	if err != nil {
		return nil, err
	}

	events := []*entities.PlaybackEvent{start}
	lastType := valueobjects.EventTypeStartPlayback
	planned := g.intBetween(g.cfg.MinSessionEvents, g.cfg.MaxSessionEvents)

	for i := 0; i < planned-1; i++ {
		if lastType.IsTerminal() {
			break
		}
		nextType := g.nextEventType(lastType)

		currentTime = currentTime.Add(g.stepDuration())
		if nextType == valueobjects.EventTypeSeek {
			position = g.rng.Intn(book.Duration() + 1)
		} else {
			position += g.intBetween(g.cfg.MinPositionStep, g.cfg.MaxPositionStep)
		}

		// Running past the end of the book terminates the session early,
		// overriding both the transition table and the planned count. The
		// config guarantees a single step cannot overrun the shortest book,
		// so this never fires before the second step and a session always
		// has at least three events.
		if position > book.Duration() {
			position = book.ClampPosition(position)
			nextType = valueobjects.EventTypeEndPlayback
		}

		event, err := entities.NewPlaybackEvent(
			user.ID(),
			book.ID(),
			nextType.String(),
			currentTime,
			position,
			book.ChapterAt(position),
			g.randomMetadata(),
		)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
		lastType = nextType
	}

	if !lastType.IsTerminal() {
		currentTime = currentTime.Add(g.stepDuration())
		end, err := entities.NewPlaybackEvent(
			user.ID(),
			book.ID(),
			valueobjects.EventTypeEndPlayback.String(),
			currentTime,
			position,
			book.ChapterAt(position),
			g.randomMetadata(),
		)
		if err != nil {
			return nil, err
		}
		events = append(events, end)
	}

	return events, nil
}

// GenerateEvents produces exactly n playback events by concatenating whole
// sessions for randomly chosen (user, book) pairs. A session that would
// push the total past n is discarded and a new pair is drawn; since
// session sizes are small and bounded this terminates quickly.
func (g *EventGenerator) GenerateEvents(n int) ([]*entities.PlaybackEvent, error) {
	if n < g.cfg.MinSessionSize() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf(
			"event count %d is below the minimum session size %d", n, g.cfg.MinSessionSize()))
	}

	events := make([]*entities.PlaybackEvent, 0, n)
	for len(events) < n {
		user := g.users[g.rng.Intn(len(g.users))]
		book := g.books[g.rng.Intn(len(g.books))]

		session, err := g.GenerateSession(user, book)
		if err != nil {
			return nil, err
		}

		if len(events)+len(session) > n {
			continue
		}
		events = append(events, session...)
	}

	g.logger.Debug("Generated event batch", zap.Int("count", len(events)))
	return events, nil
}

// nextEventType picks an allowed successor for the last event type.
func (g *EventGenerator) nextEventType(last valueobjects.EventType) valueobjects.EventType {
	switch last {
	case valueobjects.EventTypeStartPlayback, valueobjects.EventTypeResume:
		if g.rng.Intn(2) == 0 {
			return valueobjects.EventTypePause
		}
		return valueobjects.EventTypeSeek
	case valueobjects.EventTypePause:
		return valueobjects.EventTypeResume
	case valueobjects.EventTypeSeek:
		return valueobjects.EventTypePause
	default:
		return valueobjects.EventTypeEndPlayback
	}
}

func (g *EventGenerator) createUsers() ([]*entities.User, error) {
	users := make([]*entities.User, 0, g.cfg.NumUsers)
	for i := 0; i < g.cfg.NumUsers; i++ {
		user, err := entities.NewUser(entities.Preferences{
			PreferredSpeed:  entities.PlaybackSpeeds[g.rng.Intn(len(entities.PlaybackSpeeds))],
			PreferredGenres: g.sampleGenres(2),
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (g *EventGenerator) createBooks() ([]*entities.AudioBook, error) {
	books := make([]*entities.AudioBook, 0, g.cfg.NumBooks)
	for i := 0; i < g.cfg.NumBooks; i++ {
		suffix := shortHex()
		book, err := entities.NewAudioBook(
			"Book "+suffix,
			"Author "+shortHex(),
			g.intBetween(g.cfg.MinBookDuration, g.cfg.MaxBookDuration),
			g.intBetween(g.cfg.MinChapters, g.cfg.MaxChapters),
			genres[g.rng.Intn(len(genres))],
		)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// sampleGenres draws k distinct genres from the catalog list.
func (g *EventGenerator) sampleGenres(k int) []string {
	perm := g.rng.Perm(len(genres))
	sample := make([]string, 0, k)
	for _, idx := range perm[:k] {
		sample = append(sample, genres[idx])
	}
	return sample
}

func (g *EventGenerator) randomMetadata() entities.EventMetadata {
	return entities.EventMetadata{
		DeviceType:  deviceTypes[g.rng.Intn(len(deviceTypes))],
		AppVersion:  appVersion,
		NetworkType: networkTypes[g.rng.Intn(len(networkTypes))],
	}
}

func (g *EventGenerator) stepDuration() time.Duration {
	span := int64(g.cfg.MaxTimeStep - g.cfg.MinTimeStep)
	return g.cfg.MinTimeStep + time.Duration(g.rng.Int63n(span+1))
}

// intBetween returns a random int in [min, max].
func (g *EventGenerator) intBetween(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func shortHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
