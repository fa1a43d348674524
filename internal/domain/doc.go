// Package domain contains the core domain model for numlab.
//
// The domain is transport- and persistence-agnostic: it does not depend on YAML parsing,
// net/http, the filesystem or the numerical engines. Infra/adapters map into/from these types.
package domain
