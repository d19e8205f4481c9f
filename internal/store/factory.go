package store

import (
	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Tenants() TenantStore {
	return newTenantStore(s.queries)
}

func (s *Stores) Contacts() ContactStore {
	return newContactStore(s.queries)
}

func (s *Stores) Conversations() ConversationStore {
	return newConversationStore(s.queries)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.queries)
}
