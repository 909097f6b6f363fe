package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithExpiry increments a counter and starts its expiry on the first
// increment only, so the window is fixed rather than sliding.
var incrWithExpiry = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func incrementWindow(ctx context.Context, client redis.Cmdable, key string, window time.Duration) (int64, error) {
	return incrWithExpiry.Run(ctx, client, []string{key}, window.Milliseconds()).Int64()
}
