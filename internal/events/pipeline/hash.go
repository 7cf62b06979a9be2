package pipeline

import (
	"capirelay/pkg/model"
	"capirelay/pkg/sanitizer"
)

type HashOptions struct {
	// NormalizePhone parses phone numbers to E.164 digits before hashing.
	NormalizePhone bool
}

// HashIdentity maps identity attributes to their provider keys and digests.
// Absent attributes produce no digest.
func HashIdentity(u model.UserData, opts HashOptions) model.HashedIdentity {
	phone := u.Phone
	if opts.NormalizePhone && phone != "" {
		phone = sanitizer.PhoneOrRaw(phone)
	}

	return model.HashedIdentity{
		Em:         sanitizer.Hash(u.Email),
		Fn:         sanitizer.Hash(u.FirstName),
		Ln:         sanitizer.Hash(u.LastName),
		Ph:         sanitizer.Hash(phone),
		Country:    sanitizer.Hash(u.Country),
		Ct:         sanitizer.Hash(u.City),
		Zp:         sanitizer.Hash(u.Zip),
		ExternalID: sanitizer.Hash(u.ExternalID),
	}
}
