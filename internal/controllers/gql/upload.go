package gql

import (
	"fmt"

	"restaurant-orders/internal/domain"
	"restaurant-orders/internal/images"
)

// Upload carries a file that the HTTP layer placed into the request
// variables.
type Upload struct {
	*images.Upload
}

func (Upload) ImplementsGraphQLType(name string) bool { return name == "Upload" }

func (u *Upload) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case *images.Upload:
		u.Upload = v
		return nil
	case images.Upload:
		u.Upload = &v
		return nil
	}
	return fmt.Errorf("%w: Upload must be sent as a multipart file", domain.ErrInvalidInput)
}

func uploadsOf(lists ...*[]*Upload) []*images.Upload {
	var out []*images.Upload
	for _, l := range lists {
		if l == nil {
			continue
		}
		for _, u := range *l {
			if u != nil && u.Upload != nil {
				out = append(out, u.Upload)
			}
		}
	}
	return out
}
