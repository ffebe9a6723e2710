// Package anvil implements the configuration-time extension pipeline for
// definition-driven component containers.
//
// A host hands the pipeline a ComponentFactory holding declarative component
// definitions. Before any ordinary component is built, the pipeline:
//
//  1. Runs every RegistryExtension to a fixed point, letting extensions add or
//     remove definitions (including definitions of further extensions).
//  2. Runs every FactoryExtension exactly once against the finalized factory.
//  3. Assembles the factory's interceptor chain in tier order, bounded by
//     bookkeeping interceptors.
//  4. Optionally resolves every merged definition, invoking merge interceptors
//     on each reachable definition, inner definitions included.
//
// Extensions and interceptors are ordered by tier: Prioritized implementations
// first, then Ordered by ascending rank, then everything else in discovery
// order. The pipeline never invokes the same extension instance twice within a
// phase and never runs two extensions concurrently.
package anvil
