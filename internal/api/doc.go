// Package api provides the machines REST API.
//
//	@title						Machines API
//	@version					1.0
//	@description				Per-user challenge machines on ECS: start, status, stop and definition management.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package api
