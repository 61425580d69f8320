package cache

const (
	// KEY_CARTS is the fixed per-user key the serialized cart lives under.
	KEY_CARTS = "carts:user:%s"
)
