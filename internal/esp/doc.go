// Package esp holds the email service provider implementations of
// sending.Sender and the factory that picks one from configuration.
package esp
