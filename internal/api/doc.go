// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package api is the REST client for the analytics backend.

Every request goes through the same pipeline:

  - client-side token bucket (golang.org/x/time/rate)
  - circuit breaker (sony/gobreaker); 4xx responses do not count as failures
  - default headers, including "Authorization: Bearer <token>" once
    SetAuthorization has been called
  - Prometheus request metrics labelled by route template

Failed requests return *TransportError. When the backend sent a structured
body ({"detail": ...}) the error message is that detail verbatim, so it can
be shown to the user unchanged.

Endpoints:

	POST /auth/login               Login (multipart username, password, otp)
	GET  /auth/refresh             Refresh
	GET  /auth/logout              Logout
	GET  /auth/otp/check           OTPCheck
	POST /auth/otp/enable          EnableOTP (multipart otp)
	GET  /auth/otp/disable         DisableOTP
	GET  /auth/otp/disable/{id}    DisableUserOTP
	GET  /auth/otp/generate        GenerateOTP (base64 PNG)
	GET  /user/self                Self
	PUT  /user/self/password       UpdatePassword
	POST /user/reset-password      ResetPassword
	POST /user/forgot-password     ForgotPassword (?username=)
	GET  /user/unlock/{id}         Unlock
	GET  /dataset/{id}             Dataset
	POST /dataset/{id}/query       QueryDataset

The client is safe for concurrent use. The authorization header can be
swapped while requests are in flight; each request copies the headers it
starts with.
*/
package api
