// Package notifier implements the SMS alert dispatch invoked on alarms.
//
// The Twilio-backed implementation sends to a fixed configured number;
// when credentials are missing a no-op implementation takes its place so
// the rest of the system never has to care.
package notifier
