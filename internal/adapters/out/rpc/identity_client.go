package rpc

import (
	"context"

	"orderflow/internal/core/ports"
)

const methodGetUser = "/auth.v1.AuthService/GetUser"

type getUserRequest struct {
	UserUUID string `json:"user_uuid"`
}

type userWire struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type IdentityClient struct {
	caller Caller
}

var _ ports.IdentityClient = (*IdentityClient)(nil)

func NewIdentityClient(caller Caller) *IdentityClient {
	return &IdentityClient{caller: caller}
}

func (c *IdentityClient) GetUser(ctx context.Context, uuid string) (ports.User, error) {
	var resp userWire
	if err := c.caller.Call(ctx, methodGetUser, getUserRequest{UserUUID: uuid}, &resp); err != nil {
		return ports.User{}, err
	}

	user := ports.User(resp)
	if user.UUID == "" {
		user.UUID = uuid
	}
	return user, nil
}
