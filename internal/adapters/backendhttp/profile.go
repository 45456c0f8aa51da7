package backendhttp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

var (
	idKeys      = []string{"id", "_id", "userId", "user_id"}
	emailKeys   = []string{"email", "emailAddress"}
	firstKeys   = []string{"firstName", "first_name", "givenName", "given_name"}
	lastKeys    = []string{"lastName", "last_name", "familyName", "family_name"}
	displayKeys = []string{"displayName", "display_name", "name", "fullName"}
	avatarKeys  = []string{"avatarUrl", "avatar_url", "avatar", "picture", "photoUrl"}
)

// DecodeProfile normalizes a user object into domain.Profile. The backend sends either
// {"user":{...}} or the user fields at the top level, with a few field spellings.
func DecodeProfile(raw json.RawMessage) (domain.Profile, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if nested, ok := obj["user"].(map[string]any); ok {
		obj = nested
	}
	if obj == nil {
		return domain.Profile{}, fmt.Errorf("decode profile: empty user object")
	}

	p := domain.Profile{
		ID:          domain.UserID(pick(obj, idKeys)),
		Email:       pick(obj, emailKeys),
		FirstName:   pick(obj, firstKeys),
		LastName:    pick(obj, lastKeys),
		DisplayName: pick(obj, displayKeys),
		AvatarURL:   pick(obj, avatarKeys),
	}
	if p.ID == "" {
		return domain.Profile{}, fmt.Errorf("decode profile: missing user id")
	}
	return domain.NormalizeProfile(p), nil
}

func pick(obj map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
