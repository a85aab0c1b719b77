package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory Store with the same ordering and atomicity
// semantics as the Mongo repo. calls counts store accesses so tests can
// assert that invalid input never reaches the store.
type fakeStore struct {
	mu    sync.Mutex
	seq   int
	notes []*fakeNote
	calls int
}

type fakeNote struct {
	note *Note
	seq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) Insert(_ context.Context, n *Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	n.ID = primitive.NewObjectID()
	n.Likes = 0
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt

	f.seq++
	stored := *n
	f.notes = append(f.notes, &fakeNote{note: &stored, seq: f.seq})
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for _, fn := range f.notes {
		if fn.note.ID == id {
			cp := *fn.note
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (f *fakeStore) List(_ context.Context, q ListQuery) ([]*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	matched := f.matching(q.Author)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].note.CreatedAt.Equal(matched[j].note.CreatedAt) {
			return matched[i].note.CreatedAt.After(matched[j].note.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	skip := (q.Page - 1) * q.Limit
	if skip >= len(matched) {
		return []*Note{}, nil
	}
	end := skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*Note, 0, end-skip)
	for _, fn := range matched[skip:end] {
		cp := *fn.note
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) Count(_ context.Context, author string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return int64(len(f.matching(author))), nil
}

func (f *fakeStore) TopLiked(_ context.Context, limit int) ([]*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	matched := f.matching("")
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].note.Likes != matched[j].note.Likes {
			return matched[i].note.Likes > matched[j].note.Likes
		}
		if !matched[i].note.CreatedAt.Equal(matched[j].note.CreatedAt) {
			return matched[i].note.CreatedAt.After(matched[j].note.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	if limit > len(matched) {
		limit = len(matched)
	}
	out := make([]*Note, 0, limit)
	for _, fn := range matched[:limit] {
		cp := *fn.note
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) IncrementLikes(_ context.Context, id primitive.ObjectID) (*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for _, fn := range f.notes {
		if fn.note.ID == id {
			fn.note.Likes++
			fn.note.UpdatedAt = time.Now()
			cp := *fn.note
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (f *fakeStore) DecrementLikes(_ context.Context, id primitive.ObjectID) (*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for _, fn := range f.notes {
		if fn.note.ID == id {
			if fn.note.Likes > 0 {
				fn.note.Likes--
			}
			fn.note.UpdatedAt = time.Now()
			cp := *fn.note
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) (*Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for i, fn := range f.notes {
		if fn.note.ID == id {
			cp := *fn.note
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return &cp, nil
		}
	}
	return nil, ErrNoteNotFound
}

func (f *fakeStore) matching(author string) []*fakeNote {
	matched := make([]*fakeNote, 0, len(f.notes))
	for _, fn := range f.notes {
		if author == "" || fn.note.Author == author {
			matched = append(matched, fn)
		}
	}
	return matched
}

// setLikes fixes a note's like count directly, for seeding tests.
func (f *fakeStore) setLikes(id primitive.ObjectID, likes int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fn := range f.notes {
		if fn.note.ID == id {
			fn.note.Likes = likes
			return
		}
	}
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
