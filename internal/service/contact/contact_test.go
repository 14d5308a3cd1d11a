package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/willsigmon/boppa/internal/schema"
)

type fakeStore struct {
	msgs      []*schema.ContactMessage
	createErr error
	readErr   error
}

func (f *fakeStore) GetUser(context.Context, int) (*schema.User, error) { return nil, nil }
func (f *fakeStore) GetUserByUsername(context.Context, string) (*schema.User, error) {
	return nil, nil
}
func (f *fakeStore) CreateUser(context.Context, schema.InsertUser) (*schema.User, error) {
	return nil, nil
}

func (f *fakeStore) CreateContactMessage(_ context.Context, in schema.InsertContactMessage) (*schema.ContactMessage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	m := &schema.ContactMessage{
		ID:          len(f.msgs) + 1,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		ServiceType: in.ServiceType,
		Message:     in.Message,
		CreatedAt:   time.Now().UTC(),
	}
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeStore) ListContactMessages(context.Context) ([]*schema.ContactMessage, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]*schema.ContactMessage, 0, len(f.msgs))
	for i := len(f.msgs) - 1; i >= 0; i-- {
		out = append(out, f.msgs[i])
	}
	return out, nil
}

func (f *fakeStore) GetContactMessage(_ context.Context, id int) (*schema.ContactMessage, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	for _, m := range f.msgs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	ids []int
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, id int) error {
	p.ids = append(p.ids, id)
	return p.err
}

func validInput() schema.InsertContactMessage {
	return schema.InsertContactMessage{FirstName: "A", LastName: "B", Email: "a@b.com", Message: "Hello there"}
}

func TestSubmit(t *testing.T) {
	store := &fakeStore{}
	pub := &recordingPublisher{}
	svc := New(store, pub)

	msg, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if msg.ID != 1 {
		t.Errorf("ID = %d, want 1", msg.ID)
	}
	if len(pub.ids) != 1 || pub.ids[0] != msg.ID {
		t.Errorf("published ids = %v, want [%d]", pub.ids, msg.ID)
	}
}

func TestSubmit_Validation(t *testing.T) {
	store := &fakeStore{}
	pub := &recordingPublisher{}
	svc := New(store, pub)

	in := validInput()
	in.Email = "not-an-email"
	in.Message = "Hi"

	_, err := svc.Submit(context.Background(), in)
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want *schema.ValidationError", err)
	}
	if !verr.Has("email") || !verr.Has("message") {
		t.Errorf("fields = %+v, want email and message", verr.Fields)
	}
	if len(store.msgs) != 0 || len(pub.ids) != 0 {
		t.Error("invalid message was stored or published")
	}
}

func TestSubmit_StorageFailure(t *testing.T) {
	cause := errors.New("disk full")
	svc := New(&fakeStore{createErr: cause}, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), validInput())
	if !errors.Is(err, ErrInternal) || !errors.Is(err, cause) {
		t.Errorf("Submit() error = %v, want ErrInternal wrapping cause", err)
	}
}

func TestSubmit_PublishFailureIsNotFatal(t *testing.T) {
	svc := New(&fakeStore{}, &recordingPublisher{err: errors.New("nats down")})

	if _, err := svc.Submit(context.Background(), validInput()); err != nil {
		t.Errorf("Submit() error = %v, want nil", err)
	}
}

func TestSubmit_NilPublisher(t *testing.T) {
	svc := New(&fakeStore{}, nil)
	if _, err := svc.Submit(context.Background(), validInput()); err != nil {
		t.Errorf("Submit() error = %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, nil)
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Submit(ctx, validInput()); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 || list[0].ID != 3 {
		t.Errorf("List() = %d items, first id %d; want 3 items newest first", len(list), list[0].ID)
	}

	got, err := svc.Get(ctx, 2)
	if err != nil || got.ID != 2 {
		t.Errorf("Get(2) = (%v, %v)", got, err)
	}

	if _, err := svc.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestReadFailures(t *testing.T) {
	svc := New(&fakeStore{readErr: errors.New("connection refused")}, nil)
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, ErrInternal) {
		t.Errorf("List() error = %v, want ErrInternal", err)
	}
	if _, err := svc.Get(ctx, 1); !errors.Is(err, ErrInternal) {
		t.Errorf("Get() error = %v, want ErrInternal", err)
	}
}
