package schema

import (
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by storage queries and migrations.
const (
	UsersTableName           = "users"
	ContactMessagesTableName = "contact_messages"

	ColumnID          = "id"
	ColumnUsername    = "username"
	ColumnPassword    = "password"
	ColumnFirstName   = "first_name"
	ColumnLastName    = "last_name"
	ColumnEmail       = "email"
	ColumnServiceType = "service_type"
	ColumnMessage     = "message"
	ColumnCreatedAt   = "created_at"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*entschema.Column{
		{Name: ColumnID, Type: field.TypeInt, Increment: true},
		{Name: ColumnUsername, Type: field.TypeString, Unique: true, Size: 64},
		{Name: ColumnPassword, Type: field.TypeString, Size: 255},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &entschema.Table{
		Name:       UsersTableName,
		Columns:    UsersColumns,
		PrimaryKey: []*entschema.Column{UsersColumns[0]},
	}

	// ContactMessagesColumns holds the columns for the "contact_messages" table.
	ContactMessagesColumns = []*entschema.Column{
		{Name: ColumnID, Type: field.TypeInt, Increment: true},
		{Name: ColumnFirstName, Type: field.TypeString, Size: 255},
		{Name: ColumnLastName, Type: field.TypeString, Size: 255},
		{Name: ColumnEmail, Type: field.TypeString, Size: 255},
		{Name: ColumnServiceType, Type: field.TypeString, Nullable: true, Size: 255},
		{Name: ColumnMessage, Type: field.TypeString, Size: 2147483647},
		{Name: ColumnCreatedAt, Type: field.TypeTime},
	}
	// ContactMessagesTable holds the schema information for the "contact_messages" table.
	ContactMessagesTable = &entschema.Table{
		Name:       ContactMessagesTableName,
		Columns:    ContactMessagesColumns,
		PrimaryKey: []*entschema.Column{ContactMessagesColumns[0]},
		Indexes: []*entschema.Index{
			{
				Name:    "contactmessage_created_at",
				Unique:  false,
				Columns: []*entschema.Column{ContactMessagesColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*entschema.Table{
		UsersTable,
		ContactMessagesTable,
	}
)
