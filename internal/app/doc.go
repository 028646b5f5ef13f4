// Package app provides the application composition layer for the funding
// ledger.
//
// # Architecture Role
//
// The app package composes the domain services into a running application.
// It is NOT a business logic layer - business logic belongs in the service
// packages under internal/app/services/.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Main application struct, wiring, and lifecycle
//	├── core/service/       # Error vocabulary and service descriptors
//	├── domain/             # Domain models (pure data structures)
//	│   ├── identity/       # Opaque caller identity
//	│   └── program/        # Funding programs and withdrawal history
//	├── events/             # Domain events and outbound publishers
//	├── httpapi/            # HTTP API handlers and routing
//	├── metrics/            # Application metrics
//	├── services/           # Business logic
//	│   ├── accessgate/     # Admin and PIC authorization
//	│   ├── registry/       # Program catalogue and lifecycle
//	│   └── ledger/         # Pool accounting and custody settlement
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # ProgramStore and PoolStore
//	│   ├── memory/         # In-memory implementation for testing
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── runtime/            # Config-driven process assembly
//	└── system/             # Lifecycle management
//
// # Dependency Direction
//
//	cmd/fundledgerd/
//	      │
//	      ▼
//	internal/app/runtime/ (assembly)
//	      │
//	      ├──► internal/app/ (composition)
//	      │           │
//	      │           └──► internal/app/services/ (business logic)
//	      │
//	      ├──► internal/custody/ (token settlement)
//	      │           │
//	      │           └──► internal/chain/ (JSON-RPC)
//	      │
//	      └──► internal/config/
package app
