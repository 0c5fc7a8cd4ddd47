package globals

import (
	"context"
	"scrappey-go/lib/resultstore"
	"scrappey-go/lib/scrappey"
)

type key struct{}

type Value struct {
	Client *scrappey.Client
	// Store is nil unless a history database was configured.
	Store *resultstore.Store
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	value, ok := ctx.Value(key{}).(*Value)
	if !ok {
		return &Value{}
	}
	return value
}
