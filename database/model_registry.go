/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel represents a database model created by the base migration.
// Instance should return a struct pointer compatible with Bun, and Priority
// orders table creation (lower values first, so referenced tables come
// before the tables pointing at them).
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// ModelRegistry stores SQL models, their foreign keys and the extra
// migrations that come with them.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
	RegisterForeignKey(fk ForeignKeyConstraint)
	ForeignKeys() []ForeignKeyConstraint
	RegisterMigration(item MigrationItem)
	Migrations() []MigrationItem
}

type modelRegistry struct {
	models      []SQLModel
	foreignKeys []ForeignKeyConstraint
	migrations  []MigrationItem
	mutex       sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{
		models: make([]SQLModel, 0),
	}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *modelRegistry) RegisterForeignKey(fk ForeignKeyConstraint) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.foreignKeys = append(r.foreignKeys, fk)
}

func (r *modelRegistry) ForeignKeys() []ForeignKeyConstraint {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]ForeignKeyConstraint(nil), r.foreignKeys...)
}

func (r *modelRegistry) RegisterMigration(item MigrationItem) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.migrations = append(r.migrations, item)
}

func (r *modelRegistry) Migrations() []MigrationItem {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]MigrationItem(nil), r.migrations...)
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct instance and priority into an SQLModel.
func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{
		instance: instance,
		priority: priority,
	}
}

// Instance returns the underlying struct used for migrations.
func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

// Priority returns the model's ordering value; lower values run earlier.
func (a *ModelAdapter) Priority() int {
	return a.priority
}

// GetRegisteredModels returns all models registered in the default registry
// sorted by ascending priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisteredForeignKey adds a constraint created by the foreign key migration.
func RegisteredForeignKey(fk ForeignKeyConstraint) {
	defaultRegistry.RegisterForeignKey(fk)
}

// RegisteredMigration adds an application migration. It runs after the
// built-in ones, ordered by version.
func RegisteredMigration(item MigrationItem) {
	defaultRegistry.RegisterMigration(item)
}

func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	modelInstances := make([]interface{}, len(models))
	for i, model := range models {
		modelInstances[i] = model.Instance()
	}
	return modelInstances
}
