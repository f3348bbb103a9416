package service

// CanMutate reports whether requesterID may delete a resource owned by ownerID.
// Only the owner may, and an empty identity never matches.
func CanMutate(requesterID, ownerID string) bool {
	return requesterID != "" && requesterID == ownerID
}
