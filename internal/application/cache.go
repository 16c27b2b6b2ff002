package application

import (
	"context"

	"github.com/oksasatya/account-service/pkg/helpers"
)

func publicProfileKey(username string) string { return "profile:public:" + username }

func (s *Service) cachedPublicProfile(ctx context.Context, username string) (*PublicProfile, bool) {
	if s.Redis == nil {
		return nil, false
	}
	var p PublicProfile
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, publicProfileKey(username), &p)
	if err != nil {
		s.Logger.WithError(err).WithField("username", username).Warn("profile cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &p, true
}

func (s *Service) cachePublicProfile(ctx context.Context, p PublicProfile) {
	if s.Redis == nil || p.Profile.Username == "" {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, publicProfileKey(p.Profile.Username), p, s.Settings.CacheTTL); err != nil {
		s.Logger.WithError(err).WithField("username", p.Profile.Username).Warn("profile cache write failed")
	}
}

func (s *Service) invalidateProfiles(ctx context.Context, usernames ...string) {
	if s.Redis == nil {
		return
	}
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u != "" {
			keys = append(keys, publicProfileKey(u))
		}
	}
	if err := helpers.RedisDel(ctx, s.Redis, keys...); err != nil {
		s.Logger.WithError(err).WithField("keys", keys).Warn("profile cache invalidation failed")
	}
}
