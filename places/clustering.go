// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package places

// ClusterPlaces groups places into clusters based on a distance
// threshold in meters, for duplicate review after bulk imports.
func ClusterPlaces(placeList []*Place, distanceThreshold float64) [][]*Place {
	clusters := make([][]*Place, 0, len(placeList))

	visited := make([]bool, len(placeList))

	for i, p1 := range placeList {
		if visited[i] {
			continue
		}

		cluster := []*Place{p1}
		visited[i] = true

		for j, p2 := range placeList {
			if visited[j] {
				continue
			}

			// Check distance against all members of the current cluster
			for _, member := range cluster {
				if p2.Point.HaversineDistance(member.Point) <= distanceThreshold {
					cluster = append(cluster, p2)
					visited[j] = true

					break // Move to next place once it's added to the cluster
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}
