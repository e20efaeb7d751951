package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
)

// Schema versions of the stored review list.
const (
	// SchemaLegacy is the bare array written by the first browser-only widget.
	SchemaLegacy = 1
	// SchemaCurrent wraps the list in a versioned envelope.
	SchemaCurrent = 2
)

// ErrUnsupportedSchema is returned for data written by a newer version.
// Such data is never replaced by an empty list.
var ErrUnsupportedSchema = errors.New("unsupported schema version")

// LoadResult is a decoded review list plus how it was obtained.
type LoadResult struct {
	Reviews []domain.Review
	// Recovered is true when stored data was unreadable and replaced by an
	// empty list.
	Recovered bool
	// Version is the schema the data was stored in, 0 when nothing was stored.
	Version int
}

type reviewsEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	Reviews       []reviewRecord `json:"reviews"`
}

type reviewRecord struct {
	ID         string   `json:"id"`
	AuthorName string   `json:"author_name"`
	AuthorID   string   `json:"author_id"`
	Rating     float64  `json:"rating"`
	Comment    string   `json:"comment"`
	Date       string   `json:"date"`
	Likes      int      `json:"likes"`
	Dislikes   int      `json:"dislikes"`
	Reports    int      `json:"reports"`
	LikedBy    []string `json:"liked_by"`
	DislikedBy []string `json:"disliked_by"`
}

// legacyRecord is the field layout of the browser-only widget storage.
type legacyRecord struct {
	ID             string   `json:"id"`
	Nome           string   `json:"nome"`
	UsuarioID      string   `json:"usuarioId"`
	Nota           float64  `json:"nota"`
	Comentario     string   `json:"comentario"`
	Data           string   `json:"data"`
	Likes          int      `json:"likes"`
	Unlikes        int      `json:"unlikes"`
	Reports        int      `json:"reports"`
	CurtidasPor    []string `json:"curtidasPor"`
	DescurtidasPor []string `json:"descurtidasPor"`
}

// EncodeReviews serializes list in the current schema.
func EncodeReviews(list []domain.Review) ([]byte, error) {
	env := reviewsEnvelope{SchemaVersion: SchemaCurrent, Reviews: make([]reviewRecord, len(list))}
	for i := range list {
		rv := &list[i]
		env.Reviews[i] = reviewRecord{
			ID:         rv.ID,
			AuthorName: rv.AuthorName,
			AuthorID:   rv.AuthorID,
			Rating:     rv.Rating,
			Comment:    rv.Comment,
			Date:       rv.Date,
			Likes:      rv.Likes(),
			Dislikes:   rv.Dislikes(),
			Reports:    rv.Reports,
			LikedBy:    rv.LikedBy(),
			DislikedBy: rv.DislikedBy(),
		}
	}
	return json.Marshal(env)
}

// DecodeReviews parses a stored review list of any known schema. Missing
// fields take their defaults and counts are recomputed from the sets.
// Malformed data yields an empty, Recovered result instead of an error.
func DecodeReviews(data []byte) (LoadResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return LoadResult{Reviews: []domain.Review{}}, nil
	}

	switch trimmed[0] {
	case '[':
		var legacy []legacyRecord
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return recovered(), nil
		}
		out := make([]domain.Review, 0, len(legacy))
		for _, l := range legacy {
			out = append(out, fromRecord(reviewRecord{
				ID:         l.ID,
				AuthorName: l.Nome,
				AuthorID:   l.UsuarioID,
				Rating:     l.Nota,
				Comment:    l.Comentario,
				Date:       l.Data,
				Reports:    l.Reports,
				LikedBy:    l.CurtidasPor,
				DislikedBy: l.DescurtidasPor,
			}))
		}
		return LoadResult{Reviews: out, Version: SchemaLegacy}, nil

	case '{':
		var env reviewsEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return recovered(), nil
		}
		if env.SchemaVersion > SchemaCurrent {
			return LoadResult{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.SchemaVersion)
		}
		if env.SchemaVersion < SchemaCurrent {
			return recovered(), nil
		}
		out := make([]domain.Review, 0, len(env.Reviews))
		for _, r := range env.Reviews {
			out = append(out, fromRecord(r))
		}
		return LoadResult{Reviews: out, Version: SchemaCurrent}, nil
	}

	return recovered(), nil
}

func recovered() LoadResult {
	return LoadResult{Reviews: []domain.Review{}, Recovered: true}
}

// fromRecord fills defaults. A user found in both sets keeps the like.
// Stored counts are ignored in favour of the set sizes.
func fromRecord(r reviewRecord) domain.Review {
	reactions := make(map[string]domain.Reaction, len(r.LikedBy)+len(r.DislikedBy))
	for _, id := range r.DislikedBy {
		if id != "" {
			reactions[id] = domain.ReactionDisliked
		}
	}
	for _, id := range r.LikedBy {
		if id != "" {
			reactions[id] = domain.ReactionLiked
		}
	}
	reports := r.Reports
	if reports < 0 {
		reports = 0
	}
	return domain.Review{
		ID:         r.ID,
		AuthorName: r.AuthorName,
		AuthorID:   r.AuthorID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Date:       r.Date,
		Reports:    reports,
		Reactions:  reactions,
	}
}

type userEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	User          *domain.User `json:"user"`
}

// legacyUser is the browser-only {nome, id} layout.
type legacyUser struct {
	Nome string `json:"nome"`
	ID   string `json:"id"`
}

// EncodeUser serializes the active user.
func EncodeUser(u domain.User) ([]byte, error) {
	return json.Marshal(userEnvelope{SchemaVersion: 1, User: &u})
}

// DecodeUser parses a stored active user. ok is false when the data holds
// no usable user, in which case there is no active user.
func DecodeUser(data []byte) (u domain.User, ok bool) {
	var env userEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.SchemaVersion > 0 {
		if env.User == nil || env.User.ID == "" {
			return domain.User{}, false
		}
		return *env.User, true
	}

	var legacy legacyUser
	if err := json.Unmarshal(data, &legacy); err != nil || legacy.ID == "" {
		return domain.User{}, false
	}
	return domain.User{ID: legacy.ID, Name: legacy.Nome}, true
}

type sessionEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	Session       domain.Session `json:"session"`
}

// EncodeSession serializes a widget session.
func EncodeSession(s domain.Session) ([]byte, error) {
	return json.Marshal(sessionEnvelope{SchemaVersion: 1, Session: s})
}

// DecodeSession parses a stored session. Malformed data yields an idle
// session.
func DecodeSession(data []byte) (domain.Session, bool) {
	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.SchemaVersion != 1 {
		return domain.Session{}, false
	}
	return env.Session, true
}
