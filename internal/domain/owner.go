package domain

const anonymousCartKey = "ecommerce-cart"

// CartOwnerKey returns the persistence key for a username.
// An empty username maps to the anonymous cart.
func CartOwnerKey(username string) string {
	if username == "" {
		return anonymousCartKey
	}

	return anonymousCartKey + "-" + username
}

func IsAnonymousOwner(ownerID string) bool {
	return ownerID == anonymousCartKey
}
