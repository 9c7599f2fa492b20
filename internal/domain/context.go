package domain

import (
	"context"
	"fmt"
	"slices"
)

const CtxUserInfo = "userInfo"

const CtxUnknownUser = "_SMS_UNKNOWN_"

// ContextUserInfo identifies the gateway user a request is executed for.
type ContextUserInfo struct {
	Username    string
	Permissions []Permission
}

func (u *ContextUserInfo) String() string {
	return fmt.Sprintf("%s|%d", u.Username, len(u.Permissions))
}

func (u *ContextUserInfo) Can(p Permission) bool {
	return slices.Contains(u.Permissions, p)
}

func DefaultContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Username: CtxUnknownUser,
	}
}

func SetUserInfo(ctx context.Context, info *ContextUserInfo) context.Context {
	ctx = context.WithValue(ctx, CtxUserInfo, info)
	return ctx
}

func GetUserInfo(ctx context.Context) *ContextUserInfo {
	rawInfo := ctx.Value(CtxUserInfo)
	if rawInfo == nil {
		return DefaultContextUserInfo()
	}

	if info, ok := rawInfo.(*ContextUserInfo); ok {
		return info
	}

	return DefaultContextUserInfo()
}
