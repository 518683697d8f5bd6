// Package rowguard issues short-lived, self-signed impersonation tokens and
// wraps a row-level-security-aware backend client so every call it makes
// acts as a specific end user.
//
// The backend trusts any HS256 JWT signed with its shared secret; rowguard
// mints one per user, stamps it into the client's Authorization header, and
// re-mints it transparently before it expires. Refresh is single-flight: any
// number of concurrent operations observing a stale token collapse into one
// regeneration.
//
// Typical use:
//
//	cfg, err := rowguard.LoadConfig() // BACKEND_URL, BACKEND_KEY, BACKEND_JWT_SECRET
//	if err != nil {
//		log.Fatal(err)
//	}
//	scoped, err := rowguard.NewScopedClient(userID, rowguard.WithConfig(cfg))
//	if err != nil {
//		log.Fatal(err)
//	}
//	var rows []Item
//	err = scoped.Table("items").Select("*").Eq("owner", userID).Execute(ctx, &rows)
//
// NewUserClient is the one-shot variant: it mints once and hands back the
// bare backend client with no ongoing refresh.
package rowguard
