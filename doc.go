/*
 *
 * Copyright 2024 The HoraeDB Authors.
 *
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
 *
 */

/*
Package horaedb is the Go client for HoraeDB, a distributed time-series
database.

# Access modes

Direct: requests are sent straight to the HoraeDB instance owning the
table. The client fetches table routes from a bootstrap endpoint, caches
them, and keeps one grpc connection per data endpoint. Multi-table writes
are partitioned by endpoint and sent in parallel.

Proxy: requests are sent to a single HoraeDB instance which takes the
responsibility of forwarding them inside the cluster.

# Packages

  - client: the Client interface, its direct and proxy implementations and
    the per-endpoint connection pool
  - model: points, values, write requests, sql query requests and responses
  - router: the cached table router
  - rpc: the grpc transport

# Building blocks

gRPC, Arrow, Prometheus.
*/
package horaedb
