package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/amora-app/amora-backend/internal/domain"
)

// Fingerprint returns a stable hash over a normalized FilterSpec. Equivalent
// specs with differently-ordered lists hash identically; the spec must be
// normalized by the caller (Normalize sorts and dedupes every list).
func Fingerprint(spec *domain.FilterSpec) string {
	var b strings.Builder

	writeInt := func(name string, v *int) {
		b.WriteString(name)
		b.WriteByte('=')
		if v != nil {
			b.WriteString(strconv.Itoa(*v))
		}
		b.WriteByte(';')
	}
	writeFloat := func(name string, v *float64) {
		b.WriteString(name)
		b.WriteByte('=')
		if v != nil {
			b.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
		}
		b.WriteByte(';')
	}
	writeStr := func(name string, v *string) {
		b.WriteString(name)
		b.WriteByte('=')
		if v != nil {
			b.WriteString(*v)
		}
		b.WriteByte(';')
	}
	writeList := func(name string, vs []string) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(vs, ","))
		b.WriteByte(';')
	}

	writeInt("age_min", spec.AgeMin)
	writeInt("age_max", spec.AgeMax)
	writeStr("gender", spec.Gender)
	writeFloat("max_distance_km", spec.MaxDistanceKm)
	writeInt("height_min", spec.HeightMin)
	writeInt("height_max", spec.HeightMax)
	writeList("smoking", spec.Smoking)
	writeList("drinking", spec.Drinking)
	writeList("education", spec.Education)
	writeList("looking_for", spec.LookingFor)
	writeList("children", spec.Children)
	writeList("interests", spec.Interests)
	b.WriteString("verified_only=")
	b.WriteString(strconv.FormatBool(spec.VerifiedOnly))
	b.WriteString(";with_photo=")
	b.WriteString(strconv.FormatBool(spec.WithPhoto))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Key builds the discovery cache key for one request window. Keys are
// prefixed with the requester ID so invalidation can be scoped per user.
func Key(requesterID int64, fingerprint string, offset, limit int) string {
	return fmt.Sprintf("disc:%d:%s:%d:%d", requesterID, fingerprint, offset, limit)
}

func userPrefix(requesterID int64) string {
	return fmt.Sprintf("disc:%d:*", requesterID)
}
