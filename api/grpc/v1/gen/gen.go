// Package gen holds the gRPC bindings for api/grpc/v1/validator.proto.
package gen

//go:generate protoc -I .. --go-grpc_out=. --go-grpc_opt=paths=source_relative validator.proto
