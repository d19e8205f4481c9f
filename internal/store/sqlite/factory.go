package sqlite

import (
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

type Stores struct {
	db dbtx
}

func newStores(db dbtx) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Tenants() store.TenantStore {
	return &tenantStore{db: s.db}
}

func (s *Stores) Contacts() store.ContactStore {
	return &contactStore{db: s.db}
}

func (s *Stores) Conversations() store.ConversationStore {
	return &conversationStore{db: s.db}
}

func (s *Stores) Messages() store.MessageStore {
	return &messageStore{db: s.db}
}
