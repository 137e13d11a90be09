package model

func testApplication(id string) *Application {
	return &Application{
		Resource: Resource{Id: id, Name: "hadoop-" + id, User: "tgianos", Version: "2.7.1"},
		Status:   ApplicationStatusActive,
	}
}

func testCommand(id string) *Command {
	return &Command{
		Resource:   Resource{Id: id, Name: "pig-" + id, User: "tgianos", Version: "0.14"},
		Status:     CommandStatusActive,
		Executable: "/apps/pig/bin/pig",
	}
}

func testCluster(id string) *Cluster {
	return &Cluster{
		Resource:    Resource{Id: id, Name: "h2prod-" + id, User: "tgianos", Version: "2.7.1"},
		Status:      ClusterStatusUp,
		ClusterType: "yarn",
	}
}
