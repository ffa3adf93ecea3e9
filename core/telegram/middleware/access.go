package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how operator-only checks should behave.
type AdminOptions struct {
	// IsAdmin reports whether the user ID belongs to an operator.
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allows(c tele.Context) bool {
	if o.IsAdmin == nil {
		return false
	}
	sender := c.Sender()
	if sender == nil {
		return false
	}
	return o.IsAdmin(sender.ID)
}

// WithAdminCheck wraps a command handler enforcing operator-only execution when required.
func WithAdminCheck(opts AdminOptions, cmd struct {
	AdminOnly bool
	Handler   tele.HandlerFunc
}) tele.HandlerFunc {
	if !cmd.AdminOnly {
		return cmd.Handler
	}
	return func(c tele.Context) error {
		if !opts.allows(c) {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return cmd.Handler(c)
	}
}

// AdminOnlyMiddleware ensures that only operators can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !opts.allows(c) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
