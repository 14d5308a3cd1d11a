package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/willsigmon/boppa/internal/schema"
)

const tracerName = "github.com/willsigmon/boppa/internal/storage"

var contactMessageColumns = []string{
	schema.ColumnID,
	schema.ColumnFirstName,
	schema.ColumnLastName,
	schema.ColumnEmail,
	schema.ColumnServiceType,
	schema.ColumnMessage,
	schema.ColumnCreatedAt,
}

var userColumns = []string{
	schema.ColumnID,
	schema.ColumnUsername,
	schema.ColumnPassword,
}

// DatabaseStorage implements Storage on an ent SQL driver.
type DatabaseStorage struct {
	drv    dialect.Driver
	tracer trace.Tracer
	now    func() time.Time
}

type Option func(*DatabaseStorage)

// WithClock replaces the source of createdAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *DatabaseStorage) { s.now = now }
}

func NewDatabaseStorage(drv dialect.Driver, opts ...Option) *DatabaseStorage {
	s := &DatabaseStorage{
		drv:    drv,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Storage = (*DatabaseStorage)(nil)

func (s *DatabaseStorage) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *DatabaseStorage) start(ctx context.Context, op, table string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.drv.Dialect()),
			attribute.String("db.operation", op),
			attribute.String("db.sql.table", table),
		),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// timestamp truncates to microseconds, the finest precision every supported
// dialect stores, so the value returned on insert equals the one read back.
func (s *DatabaseStorage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *DatabaseStorage) GetUser(ctx context.Context, id int) (u *schema.User, err error) {
	ctx, span := s.start(ctx, "GetUser", schema.UsersTableName)
	defer func() { finish(span, err) }()

	query, args := s.builder().
		Select(userColumns...).
		From(entsql.Table(schema.UsersTableName)).
		Where(entsql.EQ(schema.ColumnID, id)).
		Limit(1).
		Query()

	u, err = s.queryUser(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: get user %d: %w", id, err)
	}
	return u, nil
}

func (s *DatabaseStorage) GetUserByUsername(ctx context.Context, username string) (u *schema.User, err error) {
	ctx, span := s.start(ctx, "GetUserByUsername", schema.UsersTableName)
	defer func() { finish(span, err) }()

	query, args := s.builder().
		Select(userColumns...).
		From(entsql.Table(schema.UsersTableName)).
		Where(entsql.EQ(schema.ColumnUsername, username)).
		Limit(1).
		Query()

	u, err = s.queryUser(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: get user by username: %w", err)
	}
	return u, nil
}

func (s *DatabaseStorage) CreateUser(ctx context.Context, in schema.InsertUser) (u *schema.User, err error) {
	ctx, span := s.start(ctx, "CreateUser", schema.UsersTableName)
	defer func() { finish(span, err) }()

	query, args := s.builder().
		Insert(schema.UsersTableName).
		Columns(schema.ColumnUsername, schema.ColumnPassword).
		Values(in.Username, in.Password).
		Returning(schema.ColumnID).
		Query()

	id, err := s.insert(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: create user: %w", err)
	}
	return &schema.User{ID: id, Username: in.Username, Password: in.Password}, nil
}

func (s *DatabaseStorage) CreateContactMessage(ctx context.Context, in schema.InsertContactMessage) (m *schema.ContactMessage, err error) {
	ctx, span := s.start(ctx, "CreateContactMessage", schema.ContactMessagesTableName)
	defer func() { finish(span, err) }()

	createdAt := s.timestamp()

	var serviceType any
	if in.ServiceType != nil {
		serviceType = *in.ServiceType
	}

	query, args := s.builder().
		Insert(schema.ContactMessagesTableName).
		Columns(
			schema.ColumnFirstName,
			schema.ColumnLastName,
			schema.ColumnEmail,
			schema.ColumnServiceType,
			schema.ColumnMessage,
			schema.ColumnCreatedAt,
		).
		Values(in.FirstName, in.LastName, in.Email, serviceType, in.Message, createdAt).
		Returning(schema.ColumnID).
		Query()

	id, err := s.insert(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: create contact message: %w", err)
	}
	span.SetAttributes(attribute.Int("contact_message.id", id))

	return &schema.ContactMessage{
		ID:          id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		ServiceType: in.ServiceType,
		Message:     in.Message,
		CreatedAt:   createdAt,
	}, nil
}

func (s *DatabaseStorage) ListContactMessages(ctx context.Context) (msgs []*schema.ContactMessage, err error) {
	ctx, span := s.start(ctx, "ListContactMessages", schema.ContactMessagesTableName)
	defer func() { finish(span, err) }()

	query, args := s.builder().
		Select(contactMessageColumns...).
		From(entsql.Table(schema.ContactMessagesTableName)).
		OrderBy(entsql.Desc(schema.ColumnCreatedAt), entsql.Desc(schema.ColumnID)).
		Query()

	msgs, err = s.queryContactMessages(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: list contact messages: %w", err)
	}
	span.SetAttributes(attribute.Int("contact_message.count", len(msgs)))
	return msgs, nil
}

func (s *DatabaseStorage) GetContactMessage(ctx context.Context, id int) (m *schema.ContactMessage, err error) {
	ctx, span := s.start(ctx, "GetContactMessage", schema.ContactMessagesTableName)
	defer func() { finish(span, err) }()

	query, args := s.builder().
		Select(contactMessageColumns...).
		From(entsql.Table(schema.ContactMessagesTableName)).
		Where(entsql.EQ(schema.ColumnID, id)).
		Limit(1).
		Query()

	msgs, err := s.queryContactMessages(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("storage: get contact message %d: %w", id, err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// insert runs an INSERT ... RETURNING id statement.
func (s *DatabaseStorage) insert(ctx context.Context, query string, args []any) (int, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("insert returned no id")
	}
	var id int
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

func (s *DatabaseStorage) queryUser(ctx context.Context, query string, args []any) (*schema.User, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var u schema.User
	if err := rows.Scan(&u.ID, &u.Username, &u.Password); err != nil {
		return nil, err
	}
	return &u, rows.Err()
}

func (s *DatabaseStorage) queryContactMessages(ctx context.Context, query string, args []any) ([]*schema.ContactMessage, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]*schema.ContactMessage, 0)
	for rows.Next() {
		var (
			m           schema.ContactMessage
			serviceType sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &serviceType, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		if serviceType.Valid {
			st := serviceType.String
			m.ServiceType = &st
		}
		m.CreatedAt = m.CreatedAt.UTC()
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
