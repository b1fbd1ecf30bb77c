// Package services provides domain services that work on several domain
// objects at once:
//   - RouteSelector picks the cheapest transportation + ocean shipping route
//     from a calculator breakdown;
//   - InvoiceBuilder turns a vehicle and its breakdown into invoice items.
package services
