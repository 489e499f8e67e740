package tallysync

import "strings"

// IdentityKey is the dedupe identity of a remote record, resolved once per
// record. Tally masters normally carry a stable GUID, but some records
// (older data, certain voucher exports) omit it; those fall back to the
// name, which stays stable across repeated full syncs as long as the remote
// stays consistent about the omission. The two cases never collide because
// the serialized forms are prefixed.
type IdentityKey struct {
	Guid string
	Name string
}

func ResolveIdentity(guid string, name string) IdentityKey {
	guid = strings.TrimSpace(guid)
	if guid != "" {
		return IdentityKey{Guid: guid}
	}
	return IdentityKey{Name: strings.TrimSpace(name)}
}

func (k IdentityKey) ByGuid() bool { return k.Guid != "" }

func (k IdentityKey) String() string {
	if k.Guid != "" {
		return "guid:" + k.Guid
	}
	return "name:" + strings.ToLower(k.Name)
}
