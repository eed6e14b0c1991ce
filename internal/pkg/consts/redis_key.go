package consts

const (
	// DashboardCacheKey hash，field 为 overview:<days> / stats
	DashboardCacheKey = "dashboard:cache:"
)

const (
	AutoPublishLock = "lock:auto_publish"
	ReconcileLock   = "lock:reconcile"
)
