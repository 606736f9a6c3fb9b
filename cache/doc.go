// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache keeps heatmap snapshots for a short TTL so polling clients do
not each hit the database.

RedisCache is used when REDIS_URL is set and lets several server instances
share one copy; otherwise MemoryCache serves a single process. Writes that
change a day's aggregates delete that day's entry and advance its generation.

A reader takes Generation before loading from the database and passes it to
Set. If a write advanced the generation in between, Set declines to store, so
a grid loaded before a write can never replace one loaded after it. Redis does
the check inside WATCH on the generation key.
*/
package cache
