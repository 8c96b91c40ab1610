// Package models contains the GORM persistence models backing the billing
// tables. They are kept separate from the domain aggregates so the domain
// layer stays free of ORM tags; mappers in this package convert in both
// directions.
//
// base.go holds the shared embedded models (BaseModel, TenantAggregateModel) and
// billing.go holds the customer, invoice, payment and receipt tables.
package models
