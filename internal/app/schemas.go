package app

import "github.com/omeyang/xapikit/pkg/api/xvalidate"

var (
	registerSchema = xvalidate.Object().
			Prop("email", xvalidate.String().Email().MinLen(3).MaxLen(50)).
			Prop("password", xvalidate.String().MinLen(6).MaxLen(100)).
			Require("email", "password").
			Strict().
			MustBuild()

	loginSchema = xvalidate.Object().
			Prop("email", xvalidate.String().Email().MinLen(1)).
			Prop("password", xvalidate.String().MinLen(1)).
			Require("email", "password").
			Strict().
			MustBuild()
)
