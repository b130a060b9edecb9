package usecases

import (
	"context"
	"fmt"

	"github.com/sophialabs/sigtrace/internal/domain/signature"
	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
	"github.com/sophialabs/sigtrace/internal/infrastructure/services"
)

// LoadSignaturesUseCase discovers signatures from the rules repository and
// the statically linked set, compiles the declarative ones, and builds a
// fresh registry. Configuration problems fail fast: a broken rule set must
// not silently run partially.
type LoadSignaturesUseCase struct {
	repo     signature.Repository
	compiler *services.Compiler
	builtins []*signature.Signature
	logger   ports.Logger
}

// NewLoadSignaturesUseCase creates a new use case.
func NewLoadSignaturesUseCase(repo signature.Repository, compiler *services.Compiler, builtins []*signature.Signature, logger ports.Logger) *LoadSignaturesUseCase {
	return &LoadSignaturesUseCase{
		repo:     repo,
		compiler: compiler,
		builtins: builtins,
		logger:   logger,
	}
}

// Execute loads, compiles, registers, and returns the built registry.
func (uc *LoadSignaturesUseCase) Execute(ctx context.Context) (*signature.Registry, error) {
	reg := signature.NewRegistry()

	for _, sig := range uc.builtins {
		if err := reg.Register(sig); err != nil {
			return nil, fmt.Errorf("failed to register built-in signature: %w", err)
		}
	}
	uc.logger.Debug("registered built-in signatures", "count", len(uc.builtins))

	defs, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature definitions: %w", err)
	}
	uc.logger.Info("loaded signature definitions from repository", "count", len(defs))

	for _, def := range defs {
		sig, err := uc.compiler.Compile(def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.SourceFile, err)
		}
		if err := reg.Register(sig); err != nil {
			return nil, fmt.Errorf("%s: %w", def.SourceFile, err)
		}
		uc.logger.Debug("registered signature", "name", sig.Meta.Name, "severity", sig.Meta.Severity)
	}

	uc.logger.Info("signature registry built", "signatures", reg.Len())
	return reg, nil
}
