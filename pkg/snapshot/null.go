package snapshot

import "context"

// NullStore never holds a snapshot and discards saves. It is used for dry
// runs that must not publish anything.
type NullStore struct{}

func (NullStore) Load(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (NullStore) Save(context.Context, []byte) error         { return nil }
func (NullStore) Close() error                               { return nil }

var _ Store = NullStore{}
