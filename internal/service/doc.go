// Package service implements the request-level flow of bjj-schedule.
//
// A Service wires the martialmatch.com scraper to three TTL caches, one per
// upstream fetch family, and merges a club's participants with the event
// schedule:
//
//	svc := service.New(scr, club.Default(), service.DefaultOptions())
//	result, err := svc.ClubSchedule(ctx, "1234-polish-open", "academia_gorila_warszawa", "planned")
//
// "Nothing to show" outcomes are not errors. They come back as an empty
// schedule with a user-facing message.
package service
